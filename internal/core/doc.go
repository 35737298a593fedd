// Package core implements the upload-to-table pipeline of the viewer.
//
// This package contains all domain logic independent of any transport. The
// web handlers and the inspect command both drive it through [Viewer].
//
// # Pipeline
//
// One upload is processed synchronously, start to finish, in memory:
//
//  1. [ParseDataURI] or a multipart part yields a [Payload]
//  2. [Inflate] expands gzip, bzip2 and xz payloads
//  3. [Decode] tries utf-8, latin-1 and utf-16 in order; when none fits,
//     [DecodeDetected] asks a charset detector instead
//  4. [ResolveDelimiter] returns an explicit choice verbatim or sniffs a
//     sample of the text with [Sniff]
//  5. [Parse] builds a [Dataset] with string labels and typed columns
//  6. [Packager.Package] turns the dataset into a [View] for the table widget
//
// Nothing is cached between runs. The only shared state is the [RunLimiter]
// bounding how many runs execute at once.
//
// # Error Handling
//
// Stages return sentinel or typed errors ([ErrNoInput], [ErrUndecodable],
// [ErrTooLarge], [*ParseError]) that callers test with errors.Is and
// errors.As. [MapError] maps any of them to a support code:
//
//   - FILE001-FILE006: size, compression, encoding and empty-file problems
//   - PARSE001-PARSE002: delimiter and ragged-row problems
//   - UPL001-UPL005: request problems (busy, cancelled, timed out)
//   - RATE001: rate limiting
package core
