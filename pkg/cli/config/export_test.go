package config

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewRepositoryForTest(backend, sqlitePath string) *Repository {
	return &Repository{backend: backend, sqlitePath: sqlitePath}
}

func NewCRMForTest(clientID, clientSecret, secretKeyring string) *CRM {
	return &CRM{
		clientID:      clientID,
		clientSecret:  clientSecret,
		secretKeyring: secretKeyring,
		redirectURL:   "http://localhost:3000/auth/callback",
		authURL:       "https://crm.example.com/oauth/authorize",
		baseURL:       "https://api.example.com",
		rateBurst:     1,
	}
}

func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{botToken: botToken, channelID: channelID}
}

func NewDataSourceForTest(kind, fixturePath string) *DataSource {
	return &DataSource{kind: kind, fixturePath: fixturePath}
}

func NewSettingsForTest(path string) *Settings {
	return &Settings{path: path}
}
