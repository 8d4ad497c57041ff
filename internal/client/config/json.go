package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/trainingportal/internal/flagx"
	"github.com/dmitrijs2005/trainingportal/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration, so they may be strings like "5s" or integer nanoseconds.
// Fields left out of the file keep their current value.
type JsonConfig struct {
	DBPath string `json:"db_path"`

	Mirror struct {
		Kind       string `json:"kind"`
		URL        string `json:"url"`
		HealthAddr string `json:"health_addr"`
	} `json:"mirror"`

	Firestore struct {
		Project     string `json:"project"`
		Root        string `json:"root"`
		Credentials string `json:"credentials"`
	} `json:"firestore"`

	ProbeTimeout   timex.Duration `json:"probe_timeout"`
	NetworkTimeout timex.Duration `json:"network_timeout"`

	Validation struct {
		TitleMinLength         int `json:"title_min_length"`
		DescriptionMinLength   int `json:"description_min_length"`
		MainObjectiveMinLength int `json:"main_objective_min_length"`
		MinDuration            int `json:"min_duration"`
		MaxDuration            int `json:"max_duration"`
		NameMinLength          int `json:"name_min_length"`
		PasswordMinLength      int `json:"password_min_length"`
	} `json:"validation"`

	Backup struct {
		Dir        string `json:"dir"`
		Passphrase string `json:"passphrase"`
		MaxBackups int    `json:"max_backups"`
		S3         struct {
			Endpoint  string `json:"endpoint"`
			Region    string `json:"region"`
			Bucket    string `json:"bucket"`
			Prefix    string `json:"prefix"`
			AccessKey string `json:"access_key"`
			SecretKey string `json:"secret_key"`
		} `json:"s3"`
	} `json:"backup"`

	LogLevel string `json:"log_level"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.MirrorKind, jc.Mirror.Kind)
	setString(&cfg.MirrorURL, jc.Mirror.URL)
	setString(&cfg.MirrorHealthAddr, jc.Mirror.HealthAddr)
	setString(&cfg.FirestoreProject, jc.Firestore.Project)
	setString(&cfg.FirestoreRoot, jc.Firestore.Root)
	setString(&cfg.FirestoreCredentials, jc.Firestore.Credentials)

	if jc.ProbeTimeout.Duration != 0 {
		cfg.ProbeTimeout = jc.ProbeTimeout.Duration
	}
	if jc.NetworkTimeout.Duration != 0 {
		cfg.NetworkTimeout = jc.NetworkTimeout.Duration
	}

	v := jc.Validation
	setInt(&cfg.Rules.TitleMinLength, v.TitleMinLength)
	setInt(&cfg.Rules.DescriptionMinLength, v.DescriptionMinLength)
	setInt(&cfg.Rules.MainObjectiveMinLength, v.MainObjectiveMinLength)
	setInt(&cfg.Rules.MinDuration, v.MinDuration)
	setInt(&cfg.Rules.MaxDuration, v.MaxDuration)
	setInt(&cfg.Rules.NameMinLength, v.NameMinLength)
	setInt(&cfg.Rules.PasswordMinLength, v.PasswordMinLength)

	b := jc.Backup
	setString(&cfg.BackupDir, b.Dir)
	setString(&cfg.BackupPassphrase, b.Passphrase)
	setInt(&cfg.MaxBackups, b.MaxBackups)
	setString(&cfg.S3Endpoint, b.S3.Endpoint)
	setString(&cfg.S3Region, b.S3.Region)
	setString(&cfg.S3Bucket, b.S3.Bucket)
	setString(&cfg.S3Prefix, b.S3.Prefix)
	setString(&cfg.S3AccessKey, b.S3.AccessKey)
	setString(&cfg.S3SecretKey, b.S3.SecretKey)

	setString(&cfg.LogLevel, jc.LogLevel)
}
