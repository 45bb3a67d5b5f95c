package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestGormConfig_TranslatesErrors(t *testing.T) {
	testCases := []struct {
		driver        string
		wantTranslate bool
	}{
		{driver: "postgres", wantTranslate: true},
		{driver: "mysql", wantTranslate: true},
		{driver: "sqlite", wantTranslate: false},
	}

	for _, tc := range testCases {
		t.Run(tc.driver, func(t *testing.T) {
			dialector, err := dialectorFor(tc.driver, "unused")
			require.NoError(t, err)
			assert.Equal(t, tc.wantTranslate, GormConfig(dialector, "warn").TranslateError)
		})
	}
}

func TestDialectorFor_Unsupported(t *testing.T) {
	_, err := dialectorFor("oracle", "dsn")
	assert.Error(t, err)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, logLevel("SILENT"))
	assert.Equal(t, logger.Info, logLevel("info"))
	assert.Equal(t, logger.Warn, logLevel("bogus"))
}
