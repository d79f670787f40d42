// SPDX-License-Identifier: MPL-2.0

// Package provision executes parsed build descriptors against a container
// engine, producing a new layered image.
//
// The pipeline applies steps strictly in declaration order. Each RUN step
// executes in a transient container created from the current top image,
// under the current effective identity, as a single shell invocation; on
// success the container is committed as a new immutable layer, on failure it
// is discarded whole and the pipeline halts. USER steps commit a
// metadata-only layer carrying the identity change, so the resulting image's
// default runtime user is the last one declared.
//
// The effective identity is an explicit field of the per-build state threaded
// through step application; there is no process-global identity.
package provision
