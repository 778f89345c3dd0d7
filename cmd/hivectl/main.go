// Command hivectl inspects offline Windows registry hives.
package main

func main() {
	execute()
}
