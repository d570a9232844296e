package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql"} {
		t.Run(driver, func(t *testing.T) {
			entries, err := fs.ReadDir(Files(), "sql/"+driver)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "000001_create_user_logins.down.sql", entries[0].Name())
			assert.Equal(t, "000001_create_user_logins.up.sql", entries[1].Name())

			up, err := fs.ReadFile(Files(), "sql/"+driver+"/000001_create_user_logins.up.sql")
			require.NoError(t, err)
			ddl := string(up)
			last := -1
			for _, column := range []string{"user_id", "app_version", "device_type", "masked_ip", "locale", "masked_device_id", "create_date"} {
				idx := strings.Index(ddl, column)
				require.NotEqual(t, -1, idx, column)
				assert.Greater(t, idx, last, "%s out of order", column)
				last = idx
			}
		})
	}
}

func TestUp_UnknownDriver(t *testing.T) {
	_, err := Up(nil, "sqlite")
	assert.Error(t, err)
}
