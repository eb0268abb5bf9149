// Package market implements the MarketPlace: the registry of all products,
// their stock levels, and their price series/generator pairs.
//
// The catalog is fixed at construction time; entries are never added or
// removed at runtime. Stock mutations on a product are serialized by a
// per-product mutex, so concurrent buys never drive stock negative.
// Mutations on different products do not block each other, and price reads
// never serialize through a global lock.
package market
