package testutil

// Deterministic values shared by link service tests. They mirror the shapes
// Plaid returns in its sandbox.
const (
	TestOwnerID     = "user-00000000-0000-0000-0000-000000000001"
	TestPublicToken = "public-sandbox-tok_abc"
	TestAccessToken = "access-sandbox-5cd6e1b1-1b5b-459d-9284-366e2da89755"
	TestItemID      = "item-sandbox-Ed6bjNrDLJfGvZWwnkQlfxwoNz54B5C97ejBr"
	TestLinkToken   = "link-sandbox-af1a0311-da53-4636-b754-dd15cc058176"
	TestAccountID   = "BxBXxLj1m4HMXBm9WZZmCWVbPjX16EHwv99vp"
	TestRequestID   = "m8MDnv9okwxFNBV"
)
