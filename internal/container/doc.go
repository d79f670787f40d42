// SPDX-License-Identifier: MPL-2.0

// Package container provides an abstraction layer over CLI container engines
// (Docker/Podman) for the provisioning pipeline: pulling base images, running
// transient containers under a selected principal, and committing their
// filesystems as new immutable image layers.
package container
