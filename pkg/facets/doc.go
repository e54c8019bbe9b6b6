/*
Package facets provides reusable behaviours that host types pick up by
embedding.

# Facets

	Identifiable     unique time-ordered ID per instance
	Configurable     configuration tree with deep-merge updates
	Subscribable[P]  named events with ordered, limited, deferred delivery
	Bindable         change notification for Property values
	Hookable[D]      sequential hook chains that can finish or repeat
	Traceable        leveled trace lines to an injectable sink
	Serializable     codec selection for Serialize, SaveTo and LoadFrom
	Disposable       at-most-once release, explicit or at end of life
	Finalizable      at-most-once finalization at end of life

Every facet is usable as its zero value:

	type App struct {
	    facets.Identifiable
	    facets.Subscribable[string]
	    facets.Hookable[Request]
	}

	app := &App{}
	app.On("ready", func(msg string) { fmt.Println(msg) })
	app.Emit("ready", app.ID())

Facet methods are named so that several facets can be embedded in one
host without ambiguous selectors.

# Engines

The facets are thin wrappers. The work happens in the subpackages:
dispatch (ordered callback registry), hook (sequential pipeline), serial
(graph codec), identity (UUID v1), config (typed access and merge), trace
(leveled lines), lifecycle (once-only end of life) and snapshot (document
stores).
*/
package facets
