package tasktree

import "context"

// ctxKey is a single magic type used as the only key ever stored in a
// context.Context's value chain, following the teacher's own rationale:
// one attachment point keeps the per-call allocation and lookup chain
// bounded regardless of how many fields the attachment carries.
type ctxKey = struct{}

// ctxAttachment holds the name information threaded through a body's
// context.Context. It deliberately carries no reference to the handle,
// Supervisor, or node itself — unlike the teacher's own context.go, which
// attaches live Supervisor/Task pointers. spec.md requires a subsystem
// handle to never leak via an ambient channel, so only the immutable
// name/path strings are attached here (see DESIGN.md).
type ctxAttachment struct {
	nameShort string
	nameFull  string
}

func withName(ctx context.Context, nameShort, nameFull string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ctxAttachment{nameShort: nameShort, nameFull: nameFull})
}

func readContext(ctx context.Context) ctxAttachment {
	v, _ := ctx.Value(ctxKey{}).(ctxAttachment)
	if v == (ctxAttachment{}) {
		return ctxAttachment{nameShort: "[unmanaged]", nameFull: "[unmanaged]"}
	}
	return v
}

// ContextName returns the absolute (hierarchical) name of the subsystem
// whose body is running on ctx, or a placeholder if ctx did not originate
// from a subsystem body.
func ContextName(ctx context.Context) string {
	return readContext(ctx).nameFull
}

// ContextLocalName returns the local (non-hierarchical) name of the
// subsystem whose body is running on ctx.
func ContextLocalName(ctx context.Context) string {
	return readContext(ctx).nameShort
}
