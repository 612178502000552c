package redis

import (
	"fmt"

	"github.com/mcoot/arise-roster/internal/model"
)

// keys builds the Redis key for each entity type under a common prefix
type keys struct {
	prefix string
}

// account returns the key holding an Account as JSON
func (k keys) account(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%s", k.prefix, id)
}

// accounts returns the SET of all account ids
func (k keys) accounts() string {
	return fmt.Sprintf("%s:idx:accounts", k.prefix)
}

// username returns the username -> account id index key
func (k keys) username(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", k.prefix, username)
}

// player returns the key holding a Player as JSON
func (k keys) player(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", k.prefix, id)
}

// players returns the SET of all player ids
func (k keys) players() string {
	return fmt.Sprintf("%s:idx:players", k.prefix)
}

// activity returns the LIST of activity entries, oldest first
func (k keys) activity() string {
	return fmt.Sprintf("%s:activity", k.prefix)
}

// session returns the key holding a Session, expiring with it
func (k keys) session(token string) string {
	return fmt.Sprintf("%s:session:%s", k.prefix, token)
}

// sessionPattern matches every session key for SCAN
func (k keys) sessionPattern() string {
	return fmt.Sprintf("%s:session:*", k.prefix)
}
