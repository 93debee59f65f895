// Package e2ee owns the symmetric key that protects selected profile fields
// end to end: the backend only ever stores ciphertext envelopes.
//
// One key exists per installation. It is generated lazily on first encrypt,
// kept in a 0600 file in the data directory, and never leaves the package
// except wrapped: ExportBackup derives a wrapping key from a passphrase
// (PBKDF2-SHA256, fresh random salt per export, a deliberately slow fixed
// iteration count) and returns a versioned opaque payload safe to store on
// an untrusted backend. ImportBackup reverses that on another device.
//
// There is no key rotation: once a key exists it is reused indefinitely and
// every export wraps the same raw material.
package e2ee
