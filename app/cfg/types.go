package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Pipeline configuration
	SeedsDir                string
	WorkerCount             int
	SchedulerInterval       int
	TaxonomyRefreshInterval int
	HomeCountry             string
	ReferenceCity           string

	// LLM cross-check configuration
	LLMEnabled  bool
	LLMEndpoint string
	LLMModel    string
	LLMTimeout  int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
