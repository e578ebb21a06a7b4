// Package conv holds checked integer conversions for sizes that come from
// configuration or from block headers on disk.
package conv
