package shader

import _ "embed"

// screenExpandSource holds the shared screen-space quad expansion helpers
// injected by //@kiss:include expand.
//
//go:embed assets/screen_expand.wgsl
var screenExpandSource string
