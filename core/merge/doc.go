// Package merge implements the reconciliation policy applied to every write
// into an entity store.
//
// The default rule is last-write-wins: the incoming document replaces the
// cached one entirely. The exception is sticky-sensitive fields (credential
// maps): a resolved plaintext value already in the cache survives an
// incoming masked placeholder, because list and poll responses return
// credentials in ENC[...] form while a targeted detail fetch returns them
// decrypted. Without the exception, a background poll completing shortly
// after a detail fetch would visibly regress the decrypted value.
//
// The policy is channel-agnostic: it looks only at field content, never at
// whether a document arrived via fetch, poll, or push. That is what makes
// applying (poll, push) and (push, poll) converge for the same logical
// version.
package merge
