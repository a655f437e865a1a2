package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// StockPolicy holds inventory business defaults that operators may tune
// without redeploying: the stock floor below which a product is flagged,
// the status a product starts in, and the statuses the API accepts.
type StockPolicy struct {
	DefaultMinStockLevel int      `mapstructure:"defaultMinStockLevel"`
	DefaultStatus        string   `mapstructure:"defaultStatus"`
	AllowedStatuses      []string `mapstructure:"allowedStatuses"`
}

func DefaultStockPolicy() StockPolicy {
	return StockPolicy{
		DefaultMinStockLevel: 5,
		DefaultStatus:        "Available",
		AllowedStatuses:      []string{"Available", "Sold", "Reserved", "OutOfStock"},
	}
}

func (p StockPolicy) StatusAllowed(status string) bool {
	for _, s := range p.AllowedStatuses {
		if strings.EqualFold(s, status) {
			return true
		}
	}
	return false
}

type StockPolicyHolder struct {
	current atomic.Value // holds StockPolicy
}

func NewStockPolicyHolder() (*StockPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("stock")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/restock/config") // Volume-mounted config
	v.AddConfigPath("/etc/restock")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("RESTOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultStockPolicy()
		v.SetDefault("stock.defaultMinStockLevel", defaults.DefaultMinStockLevel)
		v.SetDefault("stock.defaultStatus", defaults.DefaultStatus)
		v.SetDefault("stock.allowedStatuses", defaults.AllowedStatuses)
	}

	var policy StockPolicy
	if err := v.UnmarshalKey("stock", &policy); err != nil {
		return nil, err
	}
	if err := validateStockPolicy(policy); err != nil {
		return nil, err
	}

	holder := &StockPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated StockPolicy
		if err := v.UnmarshalKey("stock", &updated); err != nil {
			log.Printf("[stock-policy] reload failed: %v", err)
			return
		}
		if err := validateStockPolicy(updated); err != nil {
			log.Printf("[stock-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[stock-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *StockPolicyHolder) Get() StockPolicy {
	return h.current.Load().(StockPolicy)
}

// NewStaticStockPolicyHolder returns a holder pinned to the given policy.
// Intended for tests.
func NewStaticStockPolicyHolder(policy StockPolicy) *StockPolicyHolder {
	holder := &StockPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func validateStockPolicy(policy StockPolicy) error {
	if policy.DefaultMinStockLevel < 0 {
		return errors.New("stock.defaultMinStockLevel cannot be negative")
	}
	if strings.TrimSpace(policy.DefaultStatus) == "" {
		return errors.New("stock.defaultStatus cannot be empty")
	}
	if len(policy.AllowedStatuses) == 0 {
		return errors.New("stock.allowedStatuses cannot be empty")
	}
	if !policy.StatusAllowed(policy.DefaultStatus) {
		return errors.New("stock.defaultStatus must be one of stock.allowedStatuses")
	}
	return nil
}
