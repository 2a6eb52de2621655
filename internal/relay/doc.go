// Package relay turns object-created notifications into transform job runs.
//
// A [Relay] starts exactly one run of its configured job per notification. It does not filter, inspect or
// deduplicate notifications; the payload is decoded only to log the object key.
//
// Notifications arrive over NATS through a watermill subscriber ([Listener]) or as HTTP webhooks handled by the
// server package. [Publisher] is the sending side, used by the extractor when the store cannot emit bucket
// notifications itself.
package relay
