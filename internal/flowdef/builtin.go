package flowdef

import "sort"

// Builtin returns the stock assembly and packaging definitions. They carry
// the field wiring for the two order tables; coordinate values are the
// ones captured for the reference ERP layout and are expected to be
// overridden by a site-specific definition file.
func Builtin() *Config {
	cfg := &Config{
		WindowTitle: "ERP System",
		Flows: map[string]FlowDefinition{
			"assembly": {
				Table:      "assembly_orders",
				ItemsField: "assembly_items",
				Select:     "*,assembly_items(*,products(product_id,product_name))",
				SetupSteps: []Step{
					{Action: ActionWait, Seconds: 1, Desc: "target window settle"},
				},
				HeaderSteps: []Step{
					{Action: ActionScreenshotClick, Image: "assembly_new.png", Desc: "new assembly order"},
					{Action: ActionWait, Seconds: 1, Desc: "form open"},
					{Action: ActionClickAndType, Field: "order_no", X: 420, Y: 180, Desc: "order number"},
					{Action: ActionClickAndType, Field: "order_date", X: 420, Y: 220, Desc: "order date"},
				},
				ItemSteps: []Step{
					{Action: ActionTabAndType, Field: "products.product_id", Tabs: 1, Desc: "product id"},
					{Action: ActionTabAndType, Field: "quantity", Tabs: 1, Desc: "quantity"},
					{Action: ActionPressKey, Key: "enter", Desc: "commit item row"},
				},
				SaveStep: &Step{Action: ActionScreenshotClick, Image: "save_button.png", Desc: "save order"},
			},
			"packaging": {
				Table:      "packaging_orders",
				ItemsField: "packaging_items",
				Select:     "*,packaging_items(*,products(product_id,product_name)),customers(name,customer_code)",
				HeaderAliases: map[string]string{
					"customer_code": "customers.customer_code",
				},
				SetupSteps: []Step{
					{Action: ActionWait, Seconds: 1, Desc: "target window settle"},
				},
				HeaderSteps: []Step{
					{Action: ActionScreenshotClick, Image: "packaging_new.png", Desc: "new packaging order"},
					{Action: ActionWait, Seconds: 1, Desc: "form open"},
					{Action: ActionClickAndType, Field: "order_no", X: 420, Y: 180, Desc: "order number"},
					{Action: ActionClickAndType, Field: "order_date", X: 420, Y: 220, Desc: "order date"},
					{Action: ActionClickAndType, Field: "customer_code", X: 420, Y: 260, Desc: "customer code"},
				},
				ItemSteps: []Step{
					{Action: ActionTabAndType, Field: "products.product_id", Tabs: 1, Desc: "product id"},
					{Action: ActionTabAndType, Field: "quantity", Tabs: 1, Desc: "quantity"},
					{Action: ActionPressKey, Key: "enter", Desc: "commit item row"},
				},
				SaveStep: &Step{Action: ActionScreenshotClick, Image: "save_button.png", Desc: "save order"},
			},
		},
	}

	for name, def := range cfg.Flows {
		def.normalize(name)
		cfg.Flows[name] = def
	}
	return cfg
}

// FlowNames returns the configured flow names in sorted order.
func (c *Config) FlowNames() []string {
	names := make([]string, 0, len(c.Flows))
	for name := range c.Flows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
