/*
Command gosecd runs Lisp programs on an SECD machine.

The SECD machine, after Landin, evaluates applicative expressions with four
registers: a Stack of intermediate values, an Environment of bound variable
values, the Control list of instructions still to run, and a Dump saving the
other three across function calls. Henderson's compiler translates a small
pure Lisp into its instruction lists, which are themselves ordinary Lisp data.

Every structure involved (source expressions, compiled code, environments,
closures and the registers themselves) is built out of cells in one fixed
size heap, reclaimed by mark and sweep collection when it runs out.

The command reads expressions from the files named as arguments, or from
standard input, handling each according to -mode:

	eval     compile and run each expression, printing its value
	compile  print the instruction list compiled from each expression
	apply    read a function expression and an argument list, printing the
	         result of applying one to the other
	asm      read an instruction list, with instructions named like LDC,
	         and an argument list, printing the result of running it

For example:

	$ echo '(LETREC ((fac (LAMBDA (n) (IF (EQ n 0) 1 (MUL n (fac (SUB n 1))))))) (fac 5))' | gosecd
	120

	$ echo '(ADD 3 4)' | gosecd -mode compile
	(LDC 3 LDC 4 ADD STOP)

The special forms understood by the compiler are QUOTE, IF, LAMBDA, LET,
LETREC and APPLY, together with the primitives ADD SUB MUL DIV REM EQ LEQ CAR
CDR CONS and ATOM; any other list is a function application. Numbers are
64-bit integers.

With -i, an interactive session follows any input files. Settings may also be
given in a YAML file with -config, using the flag names (gc_log and
trace_depth spelled with underscores); explicit flags override it.
*/
package main
