// Package storage retrieves and pins marketplace media and metadata on
// decentralized storage. Event posters and ticket metadata referenced from
// chain records use "ipfs://" or "filecoin://" URIs; this package resolves
// both, reading IPFS content through a Kubo HTTP API client and Filecoin
// content through a Lighthouse gateway. Organizer tooling can also pin JSON
// metadata via UploadJSON before publishing an event on chain.
package storage
