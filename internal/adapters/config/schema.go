package config

// File represents the structure of the carry.yaml configuration file.
// The env tags name the CARRY_-prefixed variables that override each field.
type File struct {
	Backend string   `yaml:"backend" env:"BACKEND"`
	Local   LocalDTO `yaml:"local"   envPrefix:"LOCAL_"`
	S3      S3DTO    `yaml:"s3"      envPrefix:"S3_"`
	State   StateDTO `yaml:"state"   envPrefix:"STATE_"`
}

// LocalDTO configures the filesystem backend.
type LocalDTO struct {
	Dir string `yaml:"dir" env:"DIR"`
}

// S3DTO configures the S3-compatible backend.
type S3DTO struct {
	Endpoint  string `yaml:"endpoint"  env:"ENDPOINT"`
	Bucket    string `yaml:"bucket"    env:"BUCKET"`
	Prefix    string `yaml:"prefix"    env:"PREFIX"`
	Region    string `yaml:"region"    env:"REGION"`
	AccessKey string `yaml:"accessKey" env:"ACCESS_KEY"`
	SecretKey string `yaml:"secretKey" env:"SECRET_KEY"`
	UseSSL    bool   `yaml:"useSSL"    env:"USE_SSL"`
}

// StateDTO configures the run state store.
type StateDTO struct {
	Kind string `yaml:"kind" env:"KIND"`
	Dir  string `yaml:"dir"  env:"DIR"`
}
