// SPDX-License-Identifier: MPL-2.0

// Package descriptor parses plain-text, line-oriented build descriptors into
// ordered provisioning steps.
//
// A descriptor is a Dockerfile-compatible subset: a single FROM directive
// selecting the base image, followed by USER, RUN, and # comment lines, one
// directive per logical line. A RUN line may span multiple physical lines via
// backslash continuations and may chain sub-commands with &&; the parser
// splits the top-level && list so that the compound step's sub-actions are an
// explicit ordered list rather than opaque shell text.
//
// Parsing validates structure and RUN shell syntax only. Whether a USER
// principal exists inside the image is resolved lazily at execution time.
package descriptor
