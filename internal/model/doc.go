// Package model defines the value types shared by every pageflow component.
//
// Nothing in this package has behavior beyond construction, comparison and
// formatting. The render queue, visibility tracker, viewer controller and
// plugins all exchange these types; keeping them in a leaf package avoids
// import cycles between the engine and the plugin host.
//
// # Visibility
//
// Visibility is a sum type: a page is either OutOfRange (not mounted in the
// virtualization window) or Visible with a ratio in [0, 1]. OutOfRange
// compares strictly below every real ratio, so "pick the most visible page"
// works without magic sentinel numbers.
package model
