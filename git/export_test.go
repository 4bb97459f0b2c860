package git

// ConfigKeyForTest exposes configKey.
var ConfigKeyForTest = configKey
