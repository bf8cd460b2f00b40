package docs

// DefaultSource is the project's own navigation manifest.
const DefaultSource = `nav:
  - Quickstart:
      - About: index.md
      - Install: quickstart/install.md
      - First Flow: quickstart/first-flow.md
  - Tutorials:
      - Sequential Substitution Systems: tutorials/sss.md
      - Elementary Cellular Automata: tutorials/eca.md
      - Game of Life: tutorials/game-of-life.md
      - Causal Graphs: tutorials/causal-graphs.md
  - Integrations:
      - HTTP Server: integrations/server.md
      - WebSocket Events: integrations/events.md
      - Redis Persistence: integrations/redis.md
  - Code Documentation:
      - Engine Core: reference/engine.md
      - Flow Language: reference/lang.md
      - Implementations: reference/automata.md
  - Citing: citing.md
  - Contribution Policy: contributing.md
  - License: license.md
  - Contact: contact.md
`

// Default returns the project's own navigation manifest.
func Default() *Manifest {
	m, err := Parse([]byte(DefaultSource))
	if err != nil {
		panic(err)
	}
	return m
}
