package config

// Test constructors to build configs without running the CLI flag
// parser

func NewPersonaForTest(path string) *Persona {
	return &Persona{path: path}
}

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewStoreForTest(backend, url, apiKey, collection string) *Store {
	return &Store{backend: backend, url: url, apiKey: apiKey, collection: collection}
}
