package protocol

// Resolver is one optional protocol layer. Resolve must no-op when the
// round is not eligible and never leave the round without an impostor.
type Resolver interface {
	ID() string
	Resolve(r *Round) error
}

// Registry holds resolvers in registration order, which is the order they run.
type Registry struct {
	resolvers map[string]Resolver
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[string]Resolver)}
}

// Register adds a resolver. Registering an existing id replaces it in place.
func (g *Registry) Register(res Resolver) {
	id := res.ID()
	if _, exists := g.resolvers[id]; !exists {
		g.order = append(g.order, id)
	}
	g.resolvers[id] = res
}

// Get returns the resolver registered under id.
func (g *Registry) Get(id string) (Resolver, bool) {
	res, ok := g.resolvers[id]
	return res, ok
}

// IDs returns resolver ids in run order.
func (g *Registry) IDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Run resolves every registered protocol against r in order.
func (g *Registry) Run(r *Round) error {
	for _, id := range g.order {
		if err := g.resolvers[id].Resolve(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterAll registers the built-in protocols in pipeline order.
func RegisterAll(g *Registry) {
	g.Register(ArchitectResolver{})
	g.Register(StarterResolver{})
	g.Register(OracleResolver{})
	g.Register(VanguardiaResolver{})
	g.Register(NexusResolver{})
	g.Register(RenunciaResolver{})
	g.Register(MagistradoResolver{})
	g.Register(BartenderResolver{})
}

// DefaultRegistry returns a registry with every built-in protocol.
func DefaultRegistry() *Registry {
	g := NewRegistry()
	RegisterAll(g)
	return g
}
