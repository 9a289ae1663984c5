package bot

// First 1000 decimal places of pi and e, after the point.

const piDigits = "1415926535897932384626433832795028841971693993751058209749445923078164062862089986280348253421170679" +
	"8214808651328230664709384460955058223172535940812848111745028410270193852110555964462294895493038196" +
	"4428810975665933446128475648233786783165271201909145648566923460348610454326648213393607260249141273" +
	"7245870066063155881748815209209628292540917153643678925903600113305305488204665213841469519415116094" +
	"3305727036575959195309218611738193261179310511854807446237996274956735188575272489122793818301194912" +
	"9833673362440656643086021394946395224737190702179860943702770539217176293176752384674818467669405132" +
	"0005681271452635608277857713427577896091736371787214684409012249534301465495853710507922796892589235" +
	"4201995611212902196086403441815981362977477130996051870721134999999837297804995105973173281609631859" +
	"5024459455346908302642522308253344685035261931188171010003137838752886587533208381420617177669147303" +
	"5982534904287554687311595628638823537875937519577818577805321712268066130019278766111959092164201989"

const eDigits = "7182818284590452353602874713526624977572470936999595749669676277240766303535475945713821785251664274" +
	"2746639193200305992181741359662904357290033429526059563073813232862794349076323382988075319525101901" +
	"1573834187930702154089149934884167509244761460668082264800168477411853742345442437107539077744992069" +
	"5517027618386062613313845830007520449338265602976067371132007093287091274437470472306969772093101416" +
	"9283681902551510865746377211125238978442505695369677078544996996794686445490598793163688923009879312" +
	"7736178215424999229576351482208269895193668033182528869398496465105820939239829488793320362509443117" +
	"3012381970684161403970198376793206832823764648042953118023287825098194558153017567173613320698112509" +
	"9618188159304169035159888851934580727386673858942287922849989208680582574927961048419844436346324496" +
	"8487560233624827041978623209002160990235304369941849146314093431738143640546253152096183690888707016" +
	"7683964243781405927145635490613031072085103837505101157477041718986106873969655212671546889570350354"
