// Package password hashes and verifies account passwords with Argon2id.
//
// Hashes are PHC strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Every parameter needed to check a password travels inside the hash, so
// [Verify] works without the [Config] that produced it. [Argon2.NeedsUpgrade]
// reports hashes made with weaker parameters so callers can rehash after a
// successful login.
//
// The package never logs or stores plaintext.
package password
