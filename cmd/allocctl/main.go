// Command allocctl runs allocation scenario scripts under the tracking
// allocator and reports what leaked.
package main

func main() {
	execute()
}
