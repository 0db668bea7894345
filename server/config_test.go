package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Config_FillDefaults(t *testing.T) {
	testCases := []struct {
		name   string
		cfg    Config
		expect Config
	}{
		{
			name:   "zero config gets in-memory DB and cache size",
			cfg:    Config{},
			expect: Config{DB: Database{Type: DatabaseInMemory}, WorldCacheSize: 16},
		},
		{
			name:   "explicit none DB is treated as unset",
			cfg:    Config{DB: Database{Type: DatabaseNone}},
			expect: Config{DB: Database{Type: DatabaseInMemory}, WorldCacheSize: 16},
		},
		{
			name:   "set values are kept",
			cfg:    Config{DB: Database{Type: DatabaseSQLite, DataDir: "/tmp/grotto"}, WorldCacheSize: 4},
			expect: Config{DB: Database{Type: DatabaseSQLite, DataDir: "/tmp/grotto"}, WorldCacheSize: 4},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := tc.cfg.FillDefaults()

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_New_zeroConfig(t *testing.T) {
	assert := assert.New(t)

	gs, err := New(Config{})
	if !assert.NoError(err) {
		return
	}
	defer gs.Close()
}
