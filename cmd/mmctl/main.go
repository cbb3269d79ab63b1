// Command mmctl replays allocation traces against the heap allocator and
// inspects heap files.
package main

func main() {
	execute()
}
