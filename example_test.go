package respcodec_test

import (
	"bytes"
	"fmt"
	"log"

	"github.com/nussjustin/respcodec"
)

func ExampleMarshal() {
	type Person struct {
		Name string   `resp:"name"`
		Age  uint32   `resp:"age"`
		Tags []string `resp:"tags,omitempty"`
	}

	b, err := respcodec.Marshal(Person{Name: "Alice", Age: 30})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%q\n", b)
	// Output:
	// "%2\r\n$4\r\nname\r\n$5\r\nAlice\r\n$3\r\nage\r\n:30\r\n"
}

func ExampleUnmarshal() {
	var hello struct {
		Server  string   `resp:"server"`
		Version string   `resp:"version"`
		Proto   int      `resp:"proto"`
		Modules []string `resp:"modules"`
	}

	dm, err := respcodec.DecOptions{UnknownFields: respcodec.UnknownFieldsIgnore}.DecMode()
	if err != nil {
		log.Fatal(err)
	}

	in := "%4\r\n+server\r\n+redis\r\n+version\r\n+7.2.4\r\n+proto\r\n:3\r\n+mode\r\n+standalone\r\n"
	if err := dm.UnmarshalString(in, &hello); err != nil {
		log.Fatal(err)
	}
	fmt.Println(hello.Server, hello.Version, hello.Proto, hello.Modules == nil)
	// Output:
	// redis 7.2.4 3 true
}

func ExampleReader() {
	r := respcodec.NewReader([]byte("+OK\r\n:42\r\n*2\r\n$3\r\nfoo\r\n_\r\n"))

	for r.Len() > 0 {
		v, err := r.ReadValue()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(v.Type)
	}
	// Output:
	// simple string
	// integer
	// array
}

func ExampleWriter() {
	var buf bytes.Buffer
	w := respcodec.NewWriter(&buf)

	if _, err := w.WriteArrayHeader(2); err != nil {
		log.Fatal(err)
	}
	if _, err := w.WriteBulkString([]byte("GET")); err != nil {
		log.Fatal(err)
	}
	if _, err := w.WriteBulkString([]byte("key")); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%q\n", buf.String())
	// Output:
	// "*2\r\n$3\r\nGET\r\n$3\r\nkey\r\n"
}

func ExampleMarshaler() {
	b, err := respcodec.Marshal([]Shape{
		{Circle: &Circle{Radius: 1}},
		{Rect: &Rect{Width: 2, Height: 3}},
	})
	if err != nil {
		log.Fatal(err)
	}

	var shapes []Shape
	if err := respcodec.Unmarshal(b, &shapes); err != nil {
		log.Fatal(err)
	}
	fmt.Println(shapes[0].Circle.Radius, shapes[1].Rect.Width*shapes[1].Rect.Height)
	// Output:
	// 1 6
}
