// Package scene builds event trees from YAML documents.
//
// A scene describes nested nodes. Each node may carry a label, an HTML tag
// with attributes and text, and subscriptions in both directions:
//
//	root:
//	  label: app
//	  tag: main
//	  children:            # events published by descendants
//	    - event: WHO_ARE_YOU
//	      reply: app
//	  nodes:
//	    - label: list
//	      tag: ul
//	      parents:         # events published by ancestors
//	        - event: refresh
//	          lua: |
//	            return label .. " refreshed by " .. event.source
//
// A subscription replies with a static YAML value (reply) or the result of a
// Lua chunk (lua). Lua chunks see the globals event, payload and label and
// may call stop() or publish(direction, name, payload). Every Lua handler in
// a scene shares one interpreter, so scenes are not safe for concurrent use.
package scene
