package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

// defaultsFile is the YAML layout of a router defaults file. Option keys use
// the same snake_case names as the JSON form of the options.
type defaultsFile struct {
	Timeout            string `json:"timeout,omitempty"`
	RemoveInvalidChars *bool  `json:"remove_invalid_chars,omitempty"`
	ValNamePrefix      string `json:"val_name_prefix,omitempty"`
	Read               struct {
		Tap    domain.TapOptions    `json:"tap"`
		Stt    domain.SttOptions    `json:"stt"`
		Record domain.RecordOptions `json:"record"`
	} `json:"read"`
	IDListMessage domain.IDListMessageOptions `json:"id_list_message"`
}

// LoadDefaultsFile reads router defaults from a YAML file and layers them over
// base. Fields absent from the file keep their value in base.
//
//	timeout: 2m
//	read:
//	  tap:
//	    sec_wait: 10
//	    typing_playback_mode: Digits
func LoadDefaultsFile(path string, base Defaults) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read defaults file: %w", err)
	}
	return parseDefaults(data, base)
}

func parseDefaults(data []byte, base Defaults) (Defaults, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return base, fmt.Errorf("failed to parse defaults file: %w", err)
	}
	if raw == nil {
		return base, nil
	}
	// Round-trip through JSON so the option structs keep a single set of tags.
	b, err := json.Marshal(raw)
	if err != nil {
		return base, fmt.Errorf("failed to convert defaults file: %w", err)
	}
	var f defaultsFile
	if err := json.Unmarshal(b, &f); err != nil {
		return base, fmt.Errorf("invalid defaults file: %w", err)
	}

	d := base
	if f.Timeout != "" {
		timeout, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return base, fmt.Errorf("invalid timeout %q: %w", f.Timeout, err)
		}
		d.Timeout = timeout
	}
	if f.RemoveInvalidChars != nil {
		d.RemoveInvalidChars = *f.RemoveInvalidChars
	}
	if f.ValNamePrefix != "" {
		d.ValNamePrefix = f.ValNamePrefix
	}
	d.Tap = d.Tap.Merge(f.Read.Tap)
	d.Stt = d.Stt.Merge(f.Read.Stt)
	d.Record = d.Record.Merge(f.Read.Record)
	d.IDListMessage = d.IDListMessage.Merge(f.IDListMessage)
	return d, nil
}
