// Package io reads coefficient tables from JSON and CSV documents and
// writes rendered artifacts.
//
// The JSON form mirrors the tidy table contract: an array of row objects
// with "term" and "estimate" plus either "std.error" or both "lb" and
// "ub", and optional "model"/"submodel". The CSV form uses the same
// column names in a header row.
//
// Decoding is strict about the contract and loose about extras: unknown
// JSON fields and CSV columns are ignored, but a row that fails the
// interval invariant is rejected with a structured INPUT_FORMAT error
// naming the offending row.
package io
