/*
Package palisade is a pure Go implementation of lattice-based Homomorphic Encryption over
power-of-two cyclotomic rings, with the BGV, BFV and CKKS schemes in the residue number
system representation.

The module is organized in layers:

  - ring: modular arithmetic over chains of NTT-friendly primes, NTT, basis conversion and rescaling.
  - core/rlwe: keys, encryption and the BV, GHS and HYBRID key-switching techniques.
  - schemes/bgv, schemes/bfv, schemes/ckks: encoders and evaluators of the three schemes.
  - pre and multiparty: proxy re-encryption and threshold protocols, on top of core/rlwe.
*/
package palisade
