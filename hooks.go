package tasktree

// ShutdownHooks are purely observational callbacks invoked at well-defined
// transitions of the top-level shutdown state machine; they must never
// influence the state machine itself. Grounded on the original's
// ShutdownHooks trait. Embed DefaultShutdownHooks to pick up no-op
// defaults for any hook you don't care about.
type ShutdownHooks interface {
	OnShutdownRequested()
	OnSubsystemsFinished()
	OnShutdownFinished(errors []*SubsystemError)
	OnShutdownTimeout()
	// OnUncaughtError fires synchronously the moment an error reaches the
	// root sink, before the state machine reacts to it.
	OnUncaughtError(err *SubsystemError)
}

// DefaultShutdownHooks implements ShutdownHooks with no-op bodies, for
// embedding in a caller's hook type that only wants to override a few.
type DefaultShutdownHooks struct{}

func (DefaultShutdownHooks) OnShutdownRequested()                    {}
func (DefaultShutdownHooks) OnSubsystemsFinished()                   {}
func (DefaultShutdownHooks) OnShutdownFinished(errors []*SubsystemError) {}
func (DefaultShutdownHooks) OnShutdownTimeout()                      {}
func (DefaultShutdownHooks) OnUncaughtError(err *SubsystemError)     {}

type loggingHooks struct {
	DefaultShutdownHooks
	log *Logger
}

func (h *loggingHooks) OnShutdownRequested() {
	h.log.Info().Log("shutting down ...")
}

func (h *loggingHooks) OnSubsystemsFinished() {
	h.log.Info().Log("all subsystems finished")
}

func (h *loggingHooks) OnShutdownFinished(errors []*SubsystemError) {
	if len(errors) == 0 {
		h.log.Info().Log("shutdown finished")
	} else {
		h.log.Warning().Int("errors", len(errors)).Log("shutdown finished with errors")
	}
}

func (h *loggingHooks) OnShutdownTimeout() {
	h.log.Err().Log("shutdown timed out")
}

func (h *loggingHooks) OnUncaughtError(err *SubsystemError) {
	h.log.Err().Str("subsystem", err.Name).Log("uncaught subsystem error reached the root")
}
