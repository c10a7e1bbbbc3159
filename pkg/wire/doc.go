// Package wire defines the device byte protocol and the channel router.
package wire

// The protocol is a raw byte stream over a peer-to-peer channel
// (e.g. serial port) with no length fields and no bit verification.
// Frames are delimited by two-byte markers and the payload length is
// implied by the model geometry both ends agree on. Payload bytes are
// unrestricted: a marker pair inside the payload is never treated as a
// frame boundary before the configured length has been consumed.
//
// Producer: host upload scripts
// Consumer: device controller
