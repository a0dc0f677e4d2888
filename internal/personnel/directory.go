package personnel

import (
	"strings"
	"sync"

	userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"
)

// Directory maps emails to display names, kept current by a cache subscription.
type Directory struct {
	mu          sync.RWMutex
	names       map[string]string
	unsubscribe func()
}

func NewDirectory(cache *Cache) *Directory {
	d := &Directory{names: map[string]string{}}
	d.unsubscribe = cache.Subscribe(d.load)
	return d
}

func (d *Directory) load(users []*userDatamodel.User) {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[strings.ToLower(u.Email)] = u.FullName
	}
	d.mu.Lock()
	d.names = names
	d.mu.Unlock()
}

// Name falls back to the email itself for unknown users.
func (d *Directory) Name(email string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if name, ok := d.names[strings.ToLower(email)]; ok && name != "" {
		return name
	}
	return email
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.names)
}

func (d *Directory) Close() {
	d.unsubscribe()
}
