package out

type GroupDirectoryPort interface {
	ResolveGroup(name string) (string, bool)
	GroupNames() []string
}
