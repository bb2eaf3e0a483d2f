// Package sdk exposes the high-level Tickex SDK entry point. It wires
// together blockchain access (event and ticket registries), the wallet
// session manager, the cached query layer, the mutation layer, and the
// IPFS/Lighthouse media store.
package sdk
