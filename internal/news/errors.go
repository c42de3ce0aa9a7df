package news

import "errors"

// ErrAllSourcesFailed reports a refresh in which no feed could be read.
var ErrAllSourcesFailed = errors.New("news: all sources failed")
