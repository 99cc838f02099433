package model

import "time"

// LinkSession is a provider-issued, short-lived token that starts the
// end-user linking flow. It is never persisted.
type LinkSession struct {
	Token      string
	Expiration time.Time
	RequestID  string
	CreatedAt  time.Time
}
