// Package rlwe implements the generic cryptographic functionalities and operations that are common to R-LWE schemes:
// parameters and their precomputed RNS tables, keys, key generation, encryption, decryption and the
// key-switching procedures (BV, GHS and HYBRID) on which relinearization and automorphisms are built.
// The other implemented schemes extend this package with their specific operations and structures.
package rlwe
