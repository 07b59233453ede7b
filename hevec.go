/*
Package hevec implements encrypted vector algebra on top of the Lattigo homomorphic encryption library.
It evaluates dot products, matrix-vector products and packed multi-vector products over ciphertexts
with a rotate-and-sum reduction, for both the BGV (exact modular integers) and CKKS (approximate
fixed-point reals) encodings, without ever decrypting intermediate values.

The module is organized in layers, the same way Lattigo is:

  - `he` defines the scheme agnostic contracts (codec, ciphertext algebra, rotation strategy).
  - `he/heint` and `he/hefloat` instantiate them over `schemes/bgv` and `schemes/ckks`.
  - `circuits/linalg` implements the reductions and the result extraction.
  - `utils/plain` and `utils/sampling` provide plaintext references and deterministic test vectors.
*/
package hevec
