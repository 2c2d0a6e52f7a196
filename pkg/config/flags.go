package config

// Flags carries the command line surface. Set once by the CLI, read
// everywhere else.
type Flags struct {
	BuildFile    string
	Engine       string
	DryRun       bool
	List         bool
	PrintVersion bool
	Verbose      bool
}
