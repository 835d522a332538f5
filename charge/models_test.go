package charge

import (
	"testing"

	"github.com/xraph/billing/id"
	"github.com/xraph/billing/types"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Charge)
		wantErr bool
	}{
		{"product code only", func(c *Charge) { c.ProductCode = "BASIC" }, false},
		{"ad-hoc label only", func(c *Charge) { c.AdHocLabel = "one-off setup fee" }, false},
		{"both set", func(c *Charge) {
			c.ProductCode = "BASIC"
			c.AdHocLabel = "setup"
		}, false},
		{"neither set", func(c *Charge) {}, true},
		{"code too short", func(c *Charge) { c.ProductCode = "ABC" }, true},
		{"code too long", func(c *Charge) { c.ProductCode = "ABCDEFGHIJK" }, true},
		{"lowercase code", func(c *Charge) { c.ProductCode = "basic" }, true},
		{"code with digits", func(c *Charge) { c.ProductCode = "PLAN01" }, false},
		{"code with space", func(c *Charge) { c.ProductCode = "PLAN 1" }, true},
		{"reserved carried forward", func(c *Charge) { c.ProductCode = CarriedForward }, false},
		{"reserved credit remaining", func(c *Charge) { c.ProductCode = CreditRemaining }, false},
		{"valid properties", func(c *Charge) {
			c.ProductCode = "BASIC"
			c.Properties = map[string]string{"color": "red", "size_2": "XL", "maxWeight": "1kg"}
		}, false},
		{"property starting with uppercase", func(c *Charge) {
			c.ProductCode = "BASIC"
			c.Properties = map[string]string{"Weight": "1kg"}
		}, true},
		{"property starting with digit", func(c *Charge) {
			c.ProductCode = "BASIC"
			c.Properties = map[string]string{"2fast": "yes"}
		}, true},
		{"property starting with underscore", func(c *Charge) {
			c.ProductCode = "BASIC"
			c.Properties = map[string]string{"_hidden": "yes"}
		}, true},
		{"property with dash", func(c *Charge) {
			c.ProductCode = "BASIC"
			c.Properties = map[string]string{"not-ok": "yes"}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(id.NewAccountID(), types.CHF("10"))
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateReturnsValidationError(t *testing.T) {
	c := New(id.NewAccountID(), types.CHF("10"))
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(types.ValidationError); !ok {
		t.Errorf("expected types.ValidationError, got %T", err)
	}
}

func TestIsCredit(t *testing.T) {
	if New(id.NewAccountID(), types.CHF("10")).IsCredit() {
		t.Error("positive charge should not be a credit")
	}
	if !New(id.NewAccountID(), types.CHF("-10")).IsCredit() {
		t.Error("negative charge should be a credit")
	}
}

func TestIsInvoiced(t *testing.T) {
	c := New(id.NewAccountID(), types.CHF("10"))
	if c.IsInvoiced() {
		t.Error("new charge should be uninvoiced")
	}
	c.InvoiceID = id.NewInvoiceID()
	if !c.IsInvoiced() {
		t.Error("charge with invoice ID should be invoiced")
	}
}
