// Package i18n holds the runtime-loaded translation strings of one active
// language. Lookups never touch the network: until a language is loaded, and
// for keys the loaded set lacks, Get returns the key itself.
package i18n

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gymrecord/internal/client/backend"
	"github.com/dmitrijs2005/gymrecord/internal/client/models"
	"github.com/dmitrijs2005/gymrecord/internal/common"
	"github.com/dmitrijs2005/gymrecord/internal/logging"
	"golang.org/x/sync/singleflight"
)

const (
	translationTable   = "translation"
	translationColumns = "key,value,lang_code"
)

type Cache struct {
	data        backend.DataClient
	defaultLang string
	log         logging.Logger

	group singleflight.Group

	mu     sync.RWMutex
	lang   string
	values map[string]string
	loaded bool
}

func New(data backend.DataClient, defaultLang string, log logging.Logger) *Cache {
	if defaultLang == "" {
		defaultLang = common.DefaultLang
	}
	return &Cache{data: data, defaultLang: defaultLang, log: log}
}

// Initialize loads lang (the default language when empty). It is a no-op
// when lang is already loaded; concurrent calls for the same language share
// one fetch.
func (c *Cache) Initialize(ctx context.Context, lang string) error {
	if lang == "" {
		lang = c.defaultLang
	}
	if c.isLoaded(lang) {
		return nil
	}

	_, err, _ := c.group.Do("init:"+lang, func() (any, error) {
		if c.isLoaded(lang) {
			return nil, nil
		}
		return nil, c.load(ctx, lang)
	})
	return err
}

// Reload re-fetches the active language. The previous values stay visible
// until the new set replaces them and are kept if the fetch fails.
func (c *Cache) Reload(ctx context.Context) error {
	lang := c.Lang()
	if lang == "" {
		lang = c.defaultLang
	}
	_, err, _ := c.group.Do("reload:"+lang, func() (any, error) {
		return nil, c.load(ctx, lang)
	})
	return err
}

// Get returns the translation of key, or key itself.
func (c *Cache) Get(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.values[key]; ok && v != "" {
		return v
	}
	return key
}

// Lang is the language of the loaded set, "" before the first load.
func (c *Cache) Lang() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lang
}

func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Cache) isLoaded(lang string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded && c.lang == lang
}

func (c *Cache) load(ctx context.Context, lang string) error {
	var rows []models.Translation
	err := c.data.Select(ctx, translationTable, translationColumns,
		[]backend.Eq{{Column: "lang_code", Value: lang}}, &rows)
	if err != nil {
		c.log.Warn(ctx, "failed to load translations", "lang", lang, "error", err)
		return fmt.Errorf("load translations (%s): %w", lang, err)
	}

	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Key] = r.Value
	}

	// loads of different languages may overlap; the last to finish wins
	c.mu.Lock()
	c.lang = lang
	c.values = values
	c.loaded = true
	c.mu.Unlock()

	c.log.Info(ctx, "translations loaded", "lang", lang, "count", len(values))
	return nil
}
