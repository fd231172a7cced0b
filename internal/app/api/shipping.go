package api

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// shippingPolicyFile is the YAML layout of SHIPPING_POLICY_FILE:
//
//	standard: "2500"
//	express: "5000"
type shippingPolicyFile struct {
	Standard string `yaml:"standard"`
	Express  string `yaml:"express"`
}

// ResolveShippingPolicy starts from the default fee table, applies the policy
// file and then the per-fee environment overrides.
func ResolveShippingPolicy(cfg Config) (domain.ShippingPolicy, error) {
	policy := domain.DefaultShippingPolicy()
	if cfg.ShippingPolicyFile != "" {
		raw, err := os.ReadFile(cfg.ShippingPolicyFile)
		if err != nil {
			return domain.ShippingPolicy{}, fmt.Errorf("read shipping policy: %w", err)
		}
		var file shippingPolicyFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return domain.ShippingPolicy{}, fmt.Errorf("parse shipping policy: %w", err)
		}
		if err := applyFee(&policy.Standard, "standard", file.Standard); err != nil {
			return domain.ShippingPolicy{}, err
		}
		if err := applyFee(&policy.Express, "express", file.Express); err != nil {
			return domain.ShippingPolicy{}, err
		}
	}
	if err := applyFee(&policy.Standard, "SHIPPING_STANDARD_FEE", cfg.StandardFee); err != nil {
		return domain.ShippingPolicy{}, err
	}
	if err := applyFee(&policy.Express, "SHIPPING_EXPRESS_FEE", cfg.ExpressFee); err != nil {
		return domain.ShippingPolicy{}, err
	}
	if err := policy.Validate(); err != nil {
		return domain.ShippingPolicy{}, err
	}
	return policy, nil
}

func applyFee(dst *decimal.Decimal, name, raw string) error {
	if raw == "" {
		return nil
	}
	fee, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("%s must be a decimal amount: %w", name, err)
	}
	*dst = fee
	return nil
}
