// Package dependencies resolves the default collaborators shared by command builders.
package dependencies
