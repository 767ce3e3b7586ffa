package runtime

import (
	"maps"

	"github.com/aretw0/stagegen/internal/compiler"
	"github.com/aretw0/stagegen/pkg/domain"
)

// Names available to column templates on top of the document vars and group keys.
const (
	keyStage   = "stage"
	keyChannel = "channel"

	ownerFrame             = "frame"
	ownerPath              = "path"
	ownerDir               = "dir"
	ownerFilename          = "filename"
	ownerAcquisitionFolder = "acquisition_folder"
	ownerBatch             = "batch"
	ownerArm               = "arm"
	ownerNFrames           = "n_frames"
)

var keyTypes = map[string]compiler.Type{
	domain.FieldPlate: compiler.TypeString,
	domain.FieldWell:  compiler.TypeString,
	domain.FieldSite:  compiler.TypeInt,
	domain.FieldCycle: compiler.TypeInt,
	domain.KeyTile:    compiler.TypeInt,
}

var ownerTypes = map[string]compiler.Type{
	ownerFrame:             compiler.TypeInt,
	ownerPath:              compiler.TypeString,
	ownerDir:               compiler.TypeString,
	ownerFilename:          compiler.TypeString,
	ownerAcquisitionFolder: compiler.TypeString,
	ownerBatch:             compiler.TypeString,
	ownerArm:               compiler.TypeString,
	ownerNFrames:           compiler.TypeInt,
}

// scopes holds the template scopes of one stage.
type scopes struct {
	static      compiler.Scope // constants + group keys
	channelName compiler.Scope // constants + channel
	channel     compiler.Scope // constants + group keys + channel [+ owner]
	cycleName   compiler.Scope // channelName + cycle
	cycle       compiler.Scope // channel + cycle
}

func newScopes(consts map[string]any, grouping []string, synthetic bool) scopes {
	base := make(map[string]compiler.Type, len(consts))
	for k := range consts {
		base[k] = compiler.TypeString
	}
	group := maps.Clone(base)
	for _, k := range grouping {
		group[k] = keyTypes[k]
	}

	channel := maps.Clone(group)
	channel[keyChannel] = compiler.TypeString
	if !synthetic {
		maps.Copy(channel, ownerTypes)
	}
	channelName := maps.Clone(base)
	channelName[keyChannel] = compiler.TypeString

	cycle := maps.Clone(channel)
	cycle[domain.FieldCycle] = compiler.TypeInt
	cycleName := maps.Clone(channelName)
	cycleName[domain.FieldCycle] = compiler.TypeInt

	return scopes{
		static:      compiler.NewScope(group),
		channelName: compiler.NewScope(channelName),
		channel:     compiler.NewScope(channel),
		cycleName:   compiler.NewScope(cycleName),
		cycle:       compiler.NewScope(cycle),
	}
}

// env resolves template names for one position in the expansion:
// channel and cycle first, then the owner record, the group keys and constants.
type env struct {
	consts  map[string]any
	group   map[string]any
	cycle   *int
	channel string
	owner   *domain.SampleRecord
}

func (e *env) Lookup(name string) (any, bool) {
	switch name {
	case keyChannel:
		return e.channel, e.channel != ""
	case domain.FieldCycle:
		if e.cycle != nil {
			return *e.cycle, true
		}
	}
	if _, ok := ownerTypes[name]; ok && e.owner != nil {
		return e.ownerField(name)
	}
	if v, ok := e.group[name]; ok {
		return v, true
	}
	v, ok := e.consts[name]
	return v, ok
}

func (e *env) ownerField(name string) (any, bool) {
	o := e.owner
	switch name {
	case ownerFrame:
		i := o.ChannelIndex(e.channel)
		return i, i >= 0
	case ownerPath:
		return o.Path, true
	case ownerDir:
		return o.Dir(), true
	case ownerFilename:
		return o.Filename(), true
	case ownerAcquisitionFolder:
		return o.AcquisitionFolder(), true
	case ownerBatch:
		return o.Batch, true
	case ownerArm:
		return string(o.Arm), true
	case ownerNFrames:
		return o.NFrames, true
	}
	return nil, false
}
