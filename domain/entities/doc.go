// Package entities provides the core domain records exchanged across the host
// boundary. These types serve dual purpose: domain entities AND JSON wire
// format DTOs shared by the guest, the host executor and the runtime API loop.
package entities
