package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/metgate/pkg/domain/model"
)

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantErr     bool
		wantVersion string
	}{
		{
			name:        "Valid manifest",
			data:        `{"domain":"metoffice_datahub","name":"Met Office (DataHub)","version":"1.2.1"}`,
			wantVersion: "1.2.1",
		},
		{
			name:        "Extra fields ignored",
			data:        `{"domain":"metoffice_datahub","version":"0.9.0","codeowners":["@someone"],"iot_class":"cloud_polling"}`,
			wantVersion: "0.9.0",
		},
		{
			name:    "Missing version field",
			data:    `{"domain":"metoffice_datahub","name":"Met Office (DataHub)"}`,
			wantErr: true,
		},
		{
			name:    "Empty version",
			data:    `{"version":""}`,
			wantErr: true,
		},
		{
			name:    "Malformed JSON",
			data:    `{"version": "1.0.0"`,
			wantErr: true,
		},
		{
			name:    "Not an object",
			data:    `[1,2,3]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := model.ParseManifest([]byte(tt.data))
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.Value(t, m.Version).Equal(tt.wantVersion)
		})
	}
}
