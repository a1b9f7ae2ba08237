package anthropic

// BuildCachedSystemBlocks constructs system content blocks with a cache
// breakpoint at a 5-minute TTL. The resolution prompt reuses one system
// block per rule catalog across a batch, so repeated gate-triggered calls
// within the window hit the warm cache instead of re-paying for the prefix.
func BuildCachedSystemBlocks(text string) []SystemBlock {
	return []SystemBlock{
		{
			Text: text,
			CacheControl: &CacheControl{
				TTL: "5m",
			},
		},
	}
}
