// Package scene defines the scene graph used to place collision shapes.
// A scene is a DAG of shape, transform and group nodes produced by probe
// script evaluation. It is never mutated after evaluation finishes.
package scene
