/*
Package dsl builds rule documents in Go instead of YAML or JSON.

It is useful for tests, for tools that derive rules from other metadata, and
for IDE completion while writing a new stage.

Example usage:

	b := dsl.New().
		Var("base_path", "/app/data/Source1/images/Batch1").
		ChannelSet("painting", "DNA", "CHN2", "Phalloidin")

	b.Stage("1").
		Filter("arm == 'painting'").
		Group("plate", "well", "site").
		Static("Metadata_Plate", "{plate}").
		PerChannel(dsl.FromRecord().Named("Orig{channel}").Path("{dir}/").File("{filename}").Frame("{frame}"))

	doc, err := b.Build()
*/
package dsl
