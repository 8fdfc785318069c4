// Package signaling relays WebRTC session negotiation between the doctor
// and patient of a video consultation. The server never terminates media;
// it only brokers offer/answer SDP and ICE candidates between the members
// of a room.
package signaling
