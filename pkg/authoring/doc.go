/*
Package authoring implements the question configuration engine.

The Engine owns the canonical, ordered list of authored questions. It is a
reducer with a single logical state ("ready"): every command is validated and
either applied completely or rejected with the list untouched. The only guard
is case-insensitive duplicate detection on question text; parsing raw form
input is done beforehand with domain.ParseDraft.

A rejected command leaves a human readable message in LastError, which is
cleared by the next successful command or by ResetError.

Missing IDs are not errors: EditQuestion and DeleteQuestion ignore unknown IDs.
Callers that need to report NotFound check Question(id) first.

The Engine is not safe for concurrent use. Callers that share one instance
must serialize access (see session.Manager.WithLock).
*/
package authoring
