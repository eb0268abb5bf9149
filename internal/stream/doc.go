// Package stream fans live tick events out to websocket subscribers.
//
// A Hub tracks which clients follow which products. Clients send
// subscribe/unsubscribe commands over the socket and receive one JSON
// message per tick for every product they follow. Slow clients are
// disconnected rather than allowed to stall the broadcast path.
package stream
