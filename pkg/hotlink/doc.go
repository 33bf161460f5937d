// Package hotlink issues and verifies short-lived download tokens that bind
// a file id to a client fingerprint.
//
// The token prevents third-party pages from embedding download links that
// outlive the session which obtained them: a link copied to another client
// fails the fingerprint check, and any link fails after the max-age window.
//
// Tokens are compact: a base64url JSON payload joined with a truncated
// HMAC-SHA256 signature. Verification uses constant-time comparison.
//
//	issuer, err := hotlink.NewIssuer(hotlink.Config{Secret: secret, MaxAge: time.Hour})
//	if err != nil {
//		return err
//	}
//
//	tok, _ := issuer.Issue(fileID, fingerprint)
//
//	if err := issuer.Verify(tok, fileID, fingerprint); err != nil {
//		// deny the download
//	}
package hotlink
