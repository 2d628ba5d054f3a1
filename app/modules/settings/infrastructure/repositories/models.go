package settingsdb

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// GuildSetting is one key of one guild's configuration. Value holds the JSON
// encoding of whatever the owning module stored, including JSON null.
type GuildSetting struct {
	bun.BaseModel `bun:"table:guild_settings,alias:gs"`
	GuildID       string          `bun:"guild_id,pk,notnull,type:varchar(20)"`
	Key           string          `bun:"key,pk,notnull,type:varchar(64)"`
	Value         json.RawMessage `bun:"value,type:jsonb,notnull"`
	UpdatedAt     time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
