package dsl

import (
	"maps"
	"slices"

	"github.com/aretw0/stagegen/pkg/spec"
)

// ChannelGroup describes a PathName/FileName/Frame column family.
type ChannelGroup struct {
	group spec.PerChannel
}

// FromRecord takes channels from the first record in scope.
func FromRecord() *ChannelGroup {
	return &ChannelGroup{group: spec.PerChannel{Channels: spec.ChannelSource{Record: true}}}
}

// FromSet takes channels from a named channel set.
func FromSet(name string) *ChannelGroup {
	return &ChannelGroup{group: spec.PerChannel{Channels: spec.ChannelSource{Set: name}}}
}

// FromList uses a literal channel list.
func FromList(channels ...string) *ChannelGroup {
	return &ChannelGroup{group: spec.PerChannel{Channels: spec.ChannelSource{List: channels}}}
}

// Named sets the column suffix template, e.g. "Orig{channel}".
func (c *ChannelGroup) Named(name string) *ChannelGroup {
	c.group.Name = name
	return c
}

// Path sets the PathName template.
func (c *ChannelGroup) Path(template string) *ChannelGroup {
	c.group.Path = template
	return c
}

// File sets the FileName template.
func (c *ChannelGroup) File(template string) *ChannelGroup {
	c.group.File = template
	return c
}

// Frame sets the Frame template; without it no Frame column is emitted.
func (c *ChannelGroup) Frame(template string) *ChannelGroup {
	c.group.Frame = template
	return c
}

// OnlyCycles restricts channel to the given cycles.
func (c *ChannelGroup) OnlyCycles(channel string, cycles ...int) *ChannelGroup {
	if c.group.OnlyCycles == nil {
		c.group.OnlyCycles = make(map[string][]int)
	}
	c.group.OnlyCycles[channel] = cycles
	return c
}

// build returns a copy so one group can be reused across stages.
func (c *ChannelGroup) build() spec.PerChannel {
	out := c.group
	out.Channels.List = slices.Clone(c.group.Channels.List)
	out.OnlyCycles = maps.Clone(c.group.OnlyCycles)
	return out
}
